// Package request turns project state into the payload sent to the
// rendering service.
//
// Build is pure: it reads a ProjectState, substitutes defaults for every
// optional field and returns an immutable GenerationRequest:
//
//	b := request.NewBuilder(request.DefaultDefaults())
//	req, err := b.Build(project, model.ActionInterior)
//	if err != nil {
//	    // failure.KindValidation: no images, nothing to unify, ...
//	}
//	payload, err := req.Encode() // multipart/form-data
//
// Uploaded file order is page order and is preserved exactly in the
// repeated imageUrls fields.
package request
