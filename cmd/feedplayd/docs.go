package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           feedplayd API
// @version         1.0
// @description     HTTP API for driving a short-video feed session: paging, preload and playback.
//
// @contact.name   feedplay maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
