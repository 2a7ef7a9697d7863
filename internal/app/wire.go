package app

import (
	"palisade/internal/domain"
	"palisade/internal/protocol/channel"
	"palisade/internal/services/session"
)

// Wire bundles the constructed services for the CLI.
type Wire struct {
	Session *session.Service
}

// NewWire constructs the dependency graph from cfg over the given transport.
func NewWire(cfg Config, t domain.Transport) (*Wire, error) {
	role, err := cfg.HandshakeRole()
	if err != nil {
		return nil, err
	}
	svc := session.New(session.Config{
		Role:             role,
		EndpointID:       cfg.EndpointID,
		CodeIdentity:     cfg.CodeIdentity,
		HandshakeTimeout: cfg.HandshakeTimeout,
		Channel: channel.Config{
			ReplayCacheSize: cfg.ReplayCacheSize,
			Window:          cfg.Window,
		},
	}, t)
	return &Wire{Session: svc}, nil
}
