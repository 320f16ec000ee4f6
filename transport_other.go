//go:build !linux && !darwin

package main

const defaultEngine = ""

var engines = map[string]openFunc{}
