// Package export holds what the field and particle exporters share: target
// step schedules, file naming, numeric formatting, the delimited table
// writer and the Sink that creates output directories, writes files and
// records them in an optional catalog.
//
// Exporters never run on their own. Each one validates its options, installs
// a single after-step hook on the host and from then on stays armed for the
// whole run: the hook checks the host's step counter and either writes its
// files or does nothing. Errors from the filesystem or from host queries are
// returned from the hook unchanged so that the host loop can abort.
package export
