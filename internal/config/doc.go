// Package config loads legl-dev configuration.
//
// Layers are merged field by field in this order, later layers winning:
//
//	built-in defaults
//	~/.legl-dev/config.yaml (or .yml, .hcl)
//	./.legl-dev.yaml (or .yml, .hcl)
//	the file named by --config
//
// YAML and HCL are both accepted; the format comes from the file extension,
// or from the content when the extension is not recognised. Pipelines from a
// later layer replace same-named pipelines from earlier ones.
package config
