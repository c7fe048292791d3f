package core

// Family indicates which Bose product family a device belongs to, which
// determines the local control protocol used to talk to it.
type Family string

const (
	// FamilySmart covers the Smart Speaker / Smart Soundbar line, controlled
	// over a JSON websocket with cloud-brokered authentication.
	FamilySmart Family = "smart"

	// FamilySoundTouch covers the SoundTouch line, controlled over an
	// unauthenticated local REST/XML API.
	FamilySoundTouch Family = "soundtouch"
)

// Device represents a Bose device on the local network.
type Device struct {
	GUID            string `json:"guid"`
	Name            string `json:"name"`
	IP              string `json:"ip"`
	Family          Family `json:"family"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
}
