package main

// General API documentation for swaggo. Regenerate the docs package with
// `swag init -g cmd/gemmad/docs.go -o docs`.
//
// @title           gemmad API
// @version         1.0
// @description     HTTP API serving a Gemma model for text generation.
//
// @contact.name   gemmad maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
