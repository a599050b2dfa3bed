package types

// Service is a named action service exposing typed methods
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

type Proxy func(base Service) Service
