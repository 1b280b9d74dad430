// Command daft computes the discrete Fourier transform of chunked datasets
// too large to process in one piece.
package main

import (
	"context"
	"os"

	"github.com/moble/daft/internal/app"
	apperrors "github.com/moble/daft/internal/errors"
)

func main() {
	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
