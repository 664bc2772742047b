// Package config loads and validates translaterc project configuration.
//
//	            +-------------+
//	            |   Config    |
//	            | (Settings)  |
//	            +------+------+
//	                   |
//	  +--------+-------+-------+--------+
//	  |        |               |        |
//	+-+--+  +--+--+         +--+---+  +-+---+
//	|YAML|  | HCL |         | TOML |  |JSON |
//	+----+  +-----+         +------+  +-----+
//
// 🎯 Purpose:
// - Parses .translaterc.{hcl,yaml,yml,toml,json} through a parser registry
// - Loads manifest and instruction template files
// - Validates values and fills defaults
// - Layers TRANSLATERC_* environment variables and flags over the file
//
// 🔄 Flow:
// 1. Load picks a parser by file extension
// 2. The parser decodes, rejecting unknown fields, then validates
// 3. LoadSettings reads environment and flag overrides
// 4. Apply merges the overrides and validates again
// 5. Mapping, Builder and Generation hand typed values to the pipeline
//
// Relative paths in a config file resolve against the file's directory.
//
// 🔍 Example (HCL):
//
//	source {
//	  root     = "fortran"
//	  manifest = "manifest.toml"
//	}
//	destination = "cpp"
//
//	prompt {
//	  template   = "prompt.toml"
//	  chunk_size = 100
//
//	  hint "**/io/**" {
//	    lines = ["Use std::fstream for file access."]
//	  }
//	}
//
//	backend {
//	  provider    = "openai"
//	  model       = "gpt-4.1-mini"
//	  api_key_env = "OPENAI_API_KEY"
//	}
package config
