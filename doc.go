// Package streaming contains the client-side components of ML-Pipelines, a framework for
// describing distributed transformations over unbounded sequences of records. This root
// package defines the types employed when constructing a dataflow graph, and is an
// excellent overview of the framework's key concepts. Graphs built here are compiled and
// executed by a separate runtime.
package streaming
