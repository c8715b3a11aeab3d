// Package model defines the core data structures shared by the generation
// client.
//
// # Project
//
// ProjectState is the user-editable book configuration. It is owned by the
// front-end; other packages only read it and return ProjectPatch values:
//
//	patch := model.ProjectPatch{Status: model.StatusPtr(model.ProjectCompleted)}
//	project = project.Apply(patch)
//
// # Actions
//
// ActionKind names the four generation operations and maps each one to the
// remote service's action name:
//
//	model.ActionInterior.RemoteAction() // "generate_pdf"
//	model.ActionUnify.RemoteAction()    // "merge_pdfs"
//
// # Downloads
//
// DownloadRecord tracks one requested artifact from submission to a
// terminal state. Records are created and mutated only by the download
// package's Tracker.
//
// # Connectivity
//
// ConnectivityStatus is the last known reachability of the remote service,
// written only by the connectivity package's Monitor.
package model
