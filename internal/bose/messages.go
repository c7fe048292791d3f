// Package bose implements the local control protocol for the Bose smart
// speaker family (Home Speaker 300/500, Soundbar 500/700/900, Portable).
// These devices expose a JSON-over-websocket API on port 8082; every request
// carries a cloud-issued control token in its header.
package bose

import "encoding/json"

// Message types carried in the header.
const (
	MsgTypeRequest  = "REQUEST"
	MsgTypeResponse = "RESPONSE"
)

// Header is the envelope every protocol message carries.
type Header struct {
	Device   string `json:"device,omitempty"`
	Resource string `json:"resource"`
	Method   string `json:"method"`
	MsgType  string `json:"msgtype"`
	ReqID    int    `json:"reqID"`
	Version  int    `json:"version"`
	Status   int    `json:"status,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Message is a single frame on the control websocket. Responses echo the
// request's reqID; unsolicited notifications carry reqID 0.
type Message struct {
	Header Header          `json:"header"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// IsNotification reports whether the message is an unsolicited update rather
// than a response to one of our requests.
func (m *Message) IsNotification() bool {
	return m.Header.ReqID == 0
}

// Error is a protocol-level error returned in a response body.
type Error struct {
	Status      int    `json:"status"`
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SystemInfo describes the device, from /system/info.
type SystemInfo struct {
	GUID            string `json:"guid"`
	Name            string `json:"name"`
	ProductName     string `json:"productName"`
	ProductType     string `json:"productType"`
	SerialNumber    string `json:"serialNumber"`
	SoftwareVersion string `json:"softwareVersion"`
	CountryCode     string `json:"countryCode"`
}

// AudioVolume is the volume state, from /audio/volume.
type AudioVolume struct {
	Value int  `json:"value"`
	Muted bool `json:"muted"`
	Min   int  `json:"min,omitempty"`
	Max   int  `json:"max,omitempty"`
}

// ContentItem identifies what is (or should be) playing.
type ContentItem struct {
	Source        string `json:"source,omitempty"`
	SourceAccount string `json:"sourceAccount,omitempty"`
	Location      string `json:"location,omitempty"`
	Name          string `json:"name,omitempty"`
	ContainerArt  string `json:"containerArt,omitempty"`
	Presetable    bool   `json:"presetable,omitempty"`
	Type          string `json:"type,omitempty"`
}

// NowPlaying is the playback state, from /content/nowPlaying.
type NowPlaying struct {
	Source struct {
		SourceDisplayName string `json:"sourceDisplayName"`
		SourceID          string `json:"sourceID"`
	} `json:"source"`
	Container struct {
		ContentItem ContentItem `json:"contentItem"`
	} `json:"container"`
	Metadata struct {
		TrackName string `json:"trackName"`
		Artist    string `json:"artist"`
		Album     string `json:"album"`
		Duration  int    `json:"duration"`
	} `json:"metadata"`
	State struct {
		Status        string `json:"status"`
		TimeIntoTrack int    `json:"timeIntoTrack"`
		CanPause      bool   `json:"canPause"`
		CanSkip       bool   `json:"canSkipNext"`
		CanSeek       bool   `json:"canSeek"`
	} `json:"state"`
	Track struct {
		ContentItem ContentItem `json:"contentItem"`
	} `json:"track"`
}

// Playback status constants reported in NowPlaying.State.Status.
const (
	PlaybackPlaying   = "PLAY"
	PlaybackPaused    = "PAUSED"
	PlaybackBuffering = "BUFFERING"
	PlaybackStopped   = "STOPPED"
)

// PowerState is the device power state, from /system/power/control.
type PowerState struct {
	Power string `json:"power"`
}

// Power state values.
const (
	PowerOn      = "ON"
	PowerStandby = "STANDBY"
)

// Source is a selectable input, from /system/sources.
type Source struct {
	SourceName        string `json:"sourceName"`
	SourceAccountName string `json:"sourceAccountName"`
	DisplayName       string `json:"displayName"`
	Local             bool   `json:"local"`
	Multiroom         bool   `json:"multiroom"`
	Status            string `json:"status"`
	Visible           bool   `json:"visible"`
}

// Sources is the list of selectable inputs.
type Sources struct {
	Sources []Source `json:"sources"`
}

// Capabilities lists the resources the device supports, from /system/capabilities.
type Capabilities struct {
	Group []struct {
		APIGroup  string `json:"apiGroup"`
		Version   int    `json:"version"`
		Endpoints []struct {
			Endpoint string `json:"endpoint"`
		} `json:"endpoints"`
	} `json:"group"`
}

// GroupProduct is a member of an active group.
type GroupProduct struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Role        string `json:"role,omitempty"`
}

// ActiveGroup is a multiroom playback group, from /grouping/activeGroups.
type ActiveGroup struct {
	ActiveGroupID string         `json:"activeGroupId"`
	GroupMasterID string         `json:"groupMasterId"`
	Name          string         `json:"name,omitempty"`
	Products      []GroupProduct `json:"products"`
}

// ActiveGroups wraps the group list.
type ActiveGroups struct {
	ActiveGroups []ActiveGroup `json:"activeGroups"`
}

// AudioSetting is an adjustable audio value such as bass or treble, from
// /audio/<setting>.
type AudioSetting struct {
	Value       int    `json:"value"`
	Persistence string `json:"persistence,omitempty"`
	Properties  struct {
		Min             int   `json:"min"`
		Max             int   `json:"max"`
		Step            int   `json:"step"`
		SupportedValues []int `json:"supportedValues,omitempty"`
	} `json:"properties"`
}

// Accessories describes paired subwoofers and surround speakers, from
// /accessories.
type Accessories struct {
	Enabled struct {
		Rears bool `json:"rears"`
		Subs  bool `json:"subs"`
	} `json:"enabled"`
	Rears []Accessory `json:"rears"`
	Subs  []Accessory `json:"subs"`
}

// Accessory is a single paired accessory speaker.
type Accessory struct {
	Type         string `json:"type"`
	SerialNumber string `json:"serialnum"`
	Version      string `json:"version"`
	Available    bool   `json:"available"`
	Wireless     bool   `json:"wireless"`
	Configured   bool   `json:"configurationStatus,omitempty"`
}

// NetworkStatus describes network interfaces, from /network/status.
type NetworkStatus struct {
	PrimaryInterface string `json:"primary"`
	Interfaces       []struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		MACAddress string `json:"macAddress"`
		IPInfo     struct {
			IPAddress string `json:"ipAddress"`
		} `json:"ipInfo"`
		State string `json:"state"`
	} `json:"interfaces"`
}

// Battery is the battery state of portable devices, from /system/battery.
type Battery struct {
	ChargeStatus      string `json:"chargeStatus"`
	Percent           int    `json:"percent"`
	MinutesToFull     int    `json:"minutesToFull"`
	MinutesToEmpty    int    `json:"minutesToEmpty"`
	SufficientCharger bool   `json:"sufficientChargerConnected"`
}
