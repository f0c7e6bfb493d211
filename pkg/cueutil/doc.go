// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents into Go values.
//
// Every CUE document hvpack reads (the package descriptor and the tool
// configuration) goes through the same flow: compile the embedded schema,
// compile the user file and unify it with the schema's root definition,
// then validate and decode.
//
//	//go:embed descriptor_schema.cue
//	var schema string
//
//	res, err := cueutil.ParseAndDecodeString[Descriptor](schema, data, "#Descriptor",
//		cueutil.WithFilename("package.cue"))
package cueutil
