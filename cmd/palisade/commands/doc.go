// Package commands implements the palisade CLI.
//
// palisade is a demonstration surface for the secure-channel library, not a
// production daemon: the demo command runs both ends of a handshake in one
// process and walks through the protocol's guarantees, and keygen mints a
// throwaway ephemeral key pair.
package commands
