package main

import (
	"github.com/fatih/color"
)

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("yes")
	}
	return color.New(color.Bold, color.FgRed).Sprint("no")
}
