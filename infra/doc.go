// Package infra holds the adapters binding the two nodes to the outside
// world: the Paho broker client, the console stand-ins for the dispenser
// peripherals, the operator console and the metrics exporters. Everything
// here implements an interface declared under core and nothing under core
// imports back.
package infra
