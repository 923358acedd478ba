//go:build !debug

package grid

const assertionsEnabled = false
