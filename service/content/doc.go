// Package content interprets content-producing shell commands so that the
// literal file content they carry can be written directly through the safe
// file operations instead of shelling out. It recognises the
// Set-Content/Add-Content/New-Item flag form and output redirection, and
// converts the shell quoting forms (double/single quotes, here-strings,
// triple-quote blocks) into literal bytes.
package content
