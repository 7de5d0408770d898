package cmd

import "github.com/ardnew/bind/lang"

// Command failures. Each carries structured attributes for the log record
// written by main.
var (
	ErrEval        = lang.NewError("evaluation failed")
	ErrWatch       = lang.NewError("watch failed")
	ErrStep        = lang.NewError("script step failed")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
