// Package config loads shinyhunt's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path (the --config flag)
//  2. ~/.config/shinyhunt/config.toml
//
// A missing file is not an error; every field has a default. Fields that
// are present but blank also take their default.
//
// # Fields
//
//	api_base   = "https://pokeapi.co/api/v2/"   # upstream PokeAPI
//	proxy_url  = "http://127.0.0.1:7488/api/pokemon/"  # optional
//	proxy_bind = "127.0.0.1:7488"               # shinyhunt serve
//	data_dir   = "~/.local/share/shinyhunt"
//	storage    = "file"                         # file or badger
//	log_level  = "info"                         # debug, info, warn, error
//
// data_dir is tilde-expanded and made absolute. Derived locations:
//
//   - StoragePath: <data_dir>/state for file storage, <data_dir>/badger
//     for badger
//   - LogPath: <data_dir>/shinyhunt.log
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files other
// than os.ErrNotExist, and TOML parse errors. Backend names and log levels
// are validated by the packages that consume them.
package config
