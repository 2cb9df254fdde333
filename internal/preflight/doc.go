// Package preflight provides readiness checks for the directories, store and
// external services that ocwsync depends on.
//
// The CLI "ocwsync check" command runs RunAll and prints each Result. The
// download and problems commands run the subset they need before touching
// the network. Service checks are skipped when the service is not
// configured, except where a run cannot proceed without it.
package preflight
