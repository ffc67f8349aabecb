// Package testsupport holds helpers shared by tests: HTML form fixtures,
// golden files and result diffs.
package testsupport
