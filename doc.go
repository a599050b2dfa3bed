// Package devchat is a project-scoped coding chat service. A user message
// goes to an OpenAI-compatible model which replies with a message and a list
// of shell commands; every command is classified against a confinement
// checker before it runs, content-writing commands are intercepted and
// written through safe file operations, and the rest execute in the project
// directory. Rejected commands are recorded, never run, and never abort the
// batch.
package devchat
