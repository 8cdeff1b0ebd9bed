// Command hotfolderd watches configured hot folders and sends stable files to
// printers, filing each by outcome. The run subcommand starts the daemon; the
// remaining subcommands inspect and manage configuration and dispatch history.
package main
