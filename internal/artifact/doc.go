// Package artifact validates service responses and saves the resulting
// PDFs.
//
// The rendering service sometimes answers 200 with a JSON or HTML error
// instead of a PDF. Validator catches those before anything is written:
//
//	v := artifact.NewValidator(100, 10000)
//	a, err := v.Validate(resp, "bichos", model.ActionInterior, time.Now())
//	if err != nil {
//	    // failure.KindService, err carries the body text
//	}
//
//	saver := artifact.NewDirSaver(dir, "Meus Livros de Colorir")
//	if !saver.Save(a, a.Filename) {
//	    // delivery failed
//	}
package artifact
