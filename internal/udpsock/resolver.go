package udpsock

// type check
var _ InterfaceResolver = (*SystemResolver)(nil)

// SystemResolver is the [InterfaceResolver] using the interface API of the
// operating system.  On Linux, every query uses a transient control socket
// closed before the query returns.
type SystemResolver struct{}

// NewSystemResolver returns a new properly initialized *SystemResolver.
func NewSystemResolver() (r *SystemResolver) {
	return &SystemResolver{}
}
