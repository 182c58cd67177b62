// Package config loads the multichange configuration.
//
// A configuration names where the rules come from (the session state file, or
// a standalone rule list), which documents are visible for multi-document
// runs, and how documents are written back.
//
// Supported formats, chosen by file extension:
//
//	.multichange.hcl
//	.multichange.yaml / .multichange.yml
//	.multichange.json
//
// 🔍 Example (HCL):
//
//	rules          = "rules.json"
//	multi_document = true
//	backup         = true
//
//	targets {
//	  root    = env.PROJECT_ROOT
//	  include = ["**/*.go", "docs/**/*.md"]
//	  ignore  = ["vendor/**"]
//	}
//
// The same configuration in YAML:
//
//	rules: rules.json
//	multi_document: true
//	backup: true
//	root: ./src
//	targets: ["**/*.go", "docs/**/*.md"]
//	ignore: ["vendor/**"]
package config
