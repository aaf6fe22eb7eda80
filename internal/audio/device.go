// SPDX-License-Identifier: MIT
package audio

// Device describes an audio device for display surfaces like the TUI
// browser, independent of PortAudio types.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// HostDevices returns all available audio devices. PortAudio must already
// be initialized.
func HostDevices() ([]Device, error) {
	paDeviceInfos, err := paDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(paDeviceInfos))
	for i, info := range paDeviceInfos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}

	return devices, nil
}
