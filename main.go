/*
Copyright © 2025 Logicos Software

vaultpass - password front end for HashiCorp Vault

This is the main entry point for the vaultpass command-line tool.
vaultpass reads, edits, generates and displays password-style secrets
kept in Vault, delegating storage and access control to Vault itself.
*/
package main

import "vaultpass/cmd"

// main is the entry point for the vaultpass application.
// It delegates all command handling to the cmd package which uses
// the Cobra library for CLI argument parsing and command execution.
func main() {
	cmd.Execute()
}
