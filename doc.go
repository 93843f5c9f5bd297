// Package remap provides template-driven document mapping machinery.
//
// The core code is in package 'core', and some command-line tools are in `cmd`.
//
// See https://github.com/Comcast/remap/blob/master/README.md for more.
package remap
