// Package main is the dhcpudp entry point.
package main

import "github.com/AdguardTeam/dhcpudp/internal/cmd"

func main() {
	cmd.Main()
}
