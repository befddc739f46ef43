// Package services holds the error taxonomy shared by the external tool
// wrappers under services/. Each wrapper tags its failures with one of the
// sentinel errors here so callers can classify outcomes without inspecting
// message text.
package services
