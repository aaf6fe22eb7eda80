package tui

import (
	"fmt"
	"strings"

	"spectra/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

// DeviceListModel is the Bubble Tea model for browsing capture devices and
// picking analyzer settings for them.
type DeviceListModel struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	// Analyzer configuration options for the selected device.
	availableSampleRates []float64
	sampleRateIndex      int
	availableFFTSizes    []int
	fftSizeIndex         int
	configRow            int // 0 = sample rate, 1 = FFT size
}

// Init initializes the Bubble Tea model
func (m DeviceListModel) Init() tea.Cmd {
	return fetchDevices
}

// fetchDevices gets the available audio devices
func fetchDevices() tea.Msg {
	devices, err := audio.HostDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// Update handles input and updates the model
func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true

			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		// Keys that work on every screen.
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		if m.activeScreen == ListScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = ConfigScreen

					m.availableSampleRates = []float64{44100, 48000, 88200, 96000}
					m.availableFFTSizes = []int{2048, 4096, 8192}
					m.configRow = 0

					// Pre-select the device's default rate when offered.
					m.sampleRateIndex = 0
					for i, rate := range m.availableSampleRates {
						if rate == m.devices[m.selectedIndex].DefaultSampleRate {
							m.sampleRateIndex = i
							break
						}
					}
					m.fftSizeIndex = 0

					m.viewport.SetContent(m.renderDeviceConfig())
				}
			}
		} else if m.activeScreen == ConfigScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = ListScreen
				m.viewport.SetContent(m.renderDevices())

			case key.Matches(msg, key.NewBinding(key.WithKeys("tab"))):
				m.configRow = (m.configRow + 1) % 2
				m.viewport.SetContent(m.renderDeviceConfig())

			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.configRow == 0 && m.sampleRateIndex > 0 {
					m.sampleRateIndex--
				} else if m.configRow == 1 && m.fftSizeIndex > 0 {
					m.fftSizeIndex--
				}
				m.viewport.SetContent(m.renderDeviceConfig())

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.configRow == 0 && m.sampleRateIndex < len(m.availableSampleRates)-1 {
					m.sampleRateIndex++
				} else if m.configRow == 1 && m.fftSizeIndex < len(m.availableFFTSizes)-1 {
					m.fftSizeIndex++
				}
				m.viewport.SetContent(m.renderDeviceConfig())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Device List")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Analyzer Configuration")
		help = infoStyle.Render("↑/↓: Change Value • Tab: Next Field • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DeviceListModel) renderDevices() string {
	var sb strings.Builder

	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	for i, device := range m.devices {
		deviceType := ""
		if device.MaxInputChannels > 0 && device.MaxOutputChannels > 0 {
			deviceType = "Input/Output"
		} else if device.MaxInputChannels > 0 {
			deviceType = "Input"
		} else if device.MaxOutputChannels > 0 {
			deviceType = "Output"
		}

		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n",
			device.ID, device.Name, deviceType)
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n",
			device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDeviceConfig formats the analyzer configuration screen
func (m DeviceListModel) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	sb.WriteString(fmt.Sprintf("Configure Analyzer For: %s\n\n", device.Name))

	sb.WriteString("Sample Rate:\n")
	for i, rate := range m.availableSampleRates {
		marker := " "
		if i == m.sampleRateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.sampleRateIndex && m.configRow == 0 {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	sb.WriteString("\nFFT Size:\n")
	for i, size := range m.availableFFTSizes {
		marker := " "
		if i == m.fftSizeIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %d points (%.1f Hz/bin @ %.0f Hz)\n",
			marker, size,
			m.availableSampleRates[m.sampleRateIndex]/float64(size),
			m.availableSampleRates[m.sampleRateIndex])
		if i == m.fftSizeIndex && m.configRow == 1 {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	return sb.String()
}

// NewDeviceListModel creates a new device list model
func NewDeviceListModel() DeviceListModel {
	return DeviceListModel{
		selectedIndex: 0,
		activeScreen:  ListScreen,
	}
}

// StartDeviceListUI launches the Bubble Tea TUI for browsing devices
func StartDeviceListUI() error {
	p := tea.NewProgram(
		NewDeviceListModel(),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
