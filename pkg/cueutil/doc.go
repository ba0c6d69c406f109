// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing flow shared by the configuration
// loader and the project descriptor reader:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed descriptor_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseFile[document](fs, "project.cue", schemaBytes, "#Project")
//	if err != nil {
//	    return nil, err // error includes the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil
