package web

import "context"

type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// NoopServer stands in when the web remote is disabled.
type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                     { return nil }

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}
