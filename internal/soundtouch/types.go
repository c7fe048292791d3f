// Package soundtouch implements the local control protocol for the Bose
// SoundTouch family. These devices expose an unauthenticated REST/XML API on
// port 8090 and push change notifications on a websocket on port 8080.
package soundtouch

import "encoding/xml"

// Info describes the device, from GET /info.
type Info struct {
	XMLName    xml.Name `xml:"info"`
	DeviceID   string   `xml:"deviceID,attr"`
	Name       string   `xml:"name"`
	Type       string   `xml:"type"`
	Account    string   `xml:"margeAccountUUID"`
	Components []struct {
		Category        string `xml:"componentCategory"`
		SoftwareVersion string `xml:"softwareVersion"`
		SerialNumber    string `xml:"serialNumber"`
	} `xml:"components>component"`
	NetworkInfo []struct {
		Type       string `xml:"type,attr"`
		MACAddress string `xml:"macAddress"`
		IPAddress  string `xml:"ipAddress"`
	} `xml:"networkInfo"`
}

// ContentItem identifies playable content.
type ContentItem struct {
	XMLName       xml.Name `xml:"ContentItem"`
	Source        string   `xml:"source,attr"`
	Type          string   `xml:"type,attr,omitempty"`
	Location      string   `xml:"location,attr,omitempty"`
	SourceAccount string   `xml:"sourceAccount,attr,omitempty"`
	IsPresetable  bool     `xml:"isPresetable,attr,omitempty"`
	Name          string   `xml:"itemName"`
	ContainerArt  string   `xml:"containerArt,omitempty"`
}

// NowPlaying is the playback state, from GET /now_playing.
type NowPlaying struct {
	XMLName     xml.Name    `xml:"nowPlaying"`
	DeviceID    string      `xml:"deviceID,attr"`
	Source      string      `xml:"source,attr"`
	ContentItem ContentItem `xml:"ContentItem"`
	Track       string      `xml:"track"`
	Artist      string      `xml:"artist"`
	Album       string      `xml:"album"`
	StationName string      `xml:"stationName"`
	Art         struct {
		Status string `xml:"artImageStatus,attr"`
		URL    string `xml:",chardata"`
	} `xml:"art"`
	PlayStatus string `xml:"playStatus"`
	Time       struct {
		Total    int `xml:"total,attr"`
		Position int `xml:",chardata"`
	} `xml:"time"`
}

// Play status values reported in NowPlaying.PlayStatus.
const (
	PlayStatePlaying   = "PLAY_STATE"
	PlayStatePaused    = "PAUSE_STATE"
	PlayStateStopped   = "STOP_STATE"
	PlayStateBuffering = "BUFFERING_STATE"
	PlayStateInvalid   = "INVALID_PLAY_STATUS"
)

// SourceStandby is reported when the device is in standby.
const SourceStandby = "STANDBY"

// Volume is the volume state, from GET /volume.
type Volume struct {
	XMLName      xml.Name `xml:"volume"`
	DeviceID     string   `xml:"deviceID,attr"`
	TargetVolume int      `xml:"targetvolume"`
	ActualVolume int      `xml:"actualvolume"`
	MuteEnabled  bool     `xml:"muteenabled"`
}

// volumeRequest is the body of POST /volume.
type volumeRequest struct {
	XMLName xml.Name `xml:"volume"`
	Value   int      `xml:",chardata"`
}

// Preset is one of the six hardware preset slots, from GET /presets.
type Preset struct {
	XMLName     xml.Name    `xml:"preset"`
	ID          int         `xml:"id,attr"`
	ContentItem ContentItem `xml:"ContentItem"`
}

// Presets wraps the preset list.
type Presets struct {
	XMLName xml.Name `xml:"presets"`
	Presets []Preset `xml:"preset"`
}

// SourceItem is an available input, from GET /sources.
type SourceItem struct {
	XMLName       xml.Name `xml:"sourceItem"`
	Source        string   `xml:"source,attr"`
	SourceAccount string   `xml:"sourceAccount,attr"`
	Status        string   `xml:"status,attr"`
	IsLocal       bool     `xml:"isLocal,attr"`
	Name          string   `xml:",chardata"`
}

// Sources wraps the source list.
type Sources struct {
	XMLName xml.Name     `xml:"sources"`
	Items   []SourceItem `xml:"sourceItem"`
}

// ZoneMember is one speaker in a multiroom zone.
type ZoneMember struct {
	XMLName   xml.Name `xml:"member"`
	IPAddress string   `xml:"ipaddress,attr"`
	DeviceID  string   `xml:",chardata"`
}

// Zone is the multiroom zone state, from GET /getZone. The master attribute
// names the zone master's device ID; an empty master means no active zone.
type Zone struct {
	XMLName xml.Name     `xml:"zone"`
	Master  string       `xml:"master,attr"`
	Members []ZoneMember `xml:"member"`
}

// keyRequest is the body of POST /key.
type keyRequest struct {
	XMLName xml.Name `xml:"key"`
	State   string   `xml:"state,attr"`
	Sender  string   `xml:"sender,attr"`
	Value   string   `xml:",chardata"`
}

// Remote key values accepted by POST /key.
const (
	KeyPlay      = "PLAY"
	KeyPause     = "PAUSE"
	KeyStop      = "STOP"
	KeyPrevTrack = "PREV_TRACK"
	KeyNextTrack = "NEXT_TRACK"
	KeyPower     = "POWER"
	KeyMute      = "MUTE"
	KeyPreset1   = "PRESET_1"
	KeyPreset2   = "PRESET_2"
	KeyPreset3   = "PRESET_3"
	KeyPreset4   = "PRESET_4"
	KeyPreset5   = "PRESET_5"
	KeyPreset6   = "PRESET_6"
)

// apiError is returned by the device on failed requests.
type apiError struct {
	XMLName xml.Name `xml:"errors"`
	Errors  []struct {
		Value   int    `xml:"value,attr"`
		Name    string `xml:"name,attr"`
		Message string `xml:",chardata"`
	} `xml:"error"`
}
