// Package latencytrace measures, per span group, how much total wall time
// and how much actively-running time spans spend, by attaching as a span
// processor to an OpenTelemetry TracerProvider.
//
// A span group is identified by the chain of call sites (and, depending
// on the configured grouper, capture props) from a measurement's root
// down to the span itself, so that recursive or repeatedly-instrumented
// code paths are reported once per distinct ancestry rather than once per
// raw span.
//
// Activate installs the processor for the life of the process (or until
// its Handle is shut down); Measure and MeasureProbed run a workload and
// report the latencies recorded while it ran.
package latencytrace
