package interfaces

// Service is what the daemon starts and stops for every interface it
// exposes.
type Service interface {
	Start() error
	Stop()
}
