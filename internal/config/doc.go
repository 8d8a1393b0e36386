// Package config resolves per-language settings for the file being edited.
//
// Settings live in tables keyed by file extension plus a fallback table:
//
//	[file_default]
//	indent_width = 4
//
//	[file.cpp]
//	formatter = ["clang-format"]
//	compiler = { command = ["g++", "-O0", "-o", "$FILE_STEM", "$FILE_PATH"], optimize_option = ["-O2"], type = "gcc" }
//
// Two layers are consulted: the user's file and the built-in defaults
// embedded from default_config.toml. Each field is looked up in order
//
//	user [file.<ext>] → user [file_default] → built-in [file.<ext>] → built-in [file_default]
//
// and the first layer that sets it wins. Files ending in .yaml or .yml are
// read as YAML; everything else is TOML.
//
// A Language is resolved once when a document is opened and passed to the
// components that need it. The watcher subpackage reports edits to the
// user's file so the application can resolve again.
package config
