// Package infra contains technical adapters such as the MQTT setpoint
// publisher, metrics sinks and the Sentry monitor. These packages should
// depend only on the interfaces defined in the core packages.
package infra
