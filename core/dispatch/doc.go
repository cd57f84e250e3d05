// Package dispatch computes merit-order production plans.
//
// Plants are priced per MWh (wind is free, thermal units pay fuel and CO2
// divided by their efficiency), sorted cheapest first and filled greedily
// within [pmin, effective max]. A reverse-order pass then tops up running
// plants or starts idle ones when load is left over. Every output is a
// multiple of 0.1 MW and the plan total matches the load within Tolerance,
// otherwise the computation fails with a model.LoadNotMetError.
//
// ComputePlan is the pure entry point. Planner wraps it with logging, metrics
// and optional setpoint publication.
package dispatch
