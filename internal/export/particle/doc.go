// Package particle exports particle phase-space data from the host: records
// of particles crossing fixed z planes, per-step snapshots of a whole species
// and point clouds for 3D viewers.
//
// Every exporter validates its options when registered and installs a single
// after-step hook that stays attached for the whole run.
package particle
