// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI for live receiver monitoring",
	Long: `Monitor a receiver via an interactive terminal UI.

Shows the latest position fix, per-satellite signal levels, decode
statistics, and an event log with receiver events and decode errors.

Supports device, serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational entries
}

// Latest fix data
type fixData struct {
	timestamp  time.Time
	fcount     uint32
	latDeg     float64
	lonDeg     float64
	altitudeM  float64
	hasAlt     bool
	satellites []uint8
}

// satItem is one satellite row in the signal list
type satItem struct {
	entry ai2.MeasurementEntry
}

// Implement list.Item interface
func (s satItem) Title() string { return fmt.Sprintf("SV %d", s.entry.SV) }
func (s satItem) Description() string {
	return fmt.Sprintf("SNR %.1f dB   CNo %.1f dB", s.entry.SNRdB, s.entry.CNodB)
}
func (s satItem) FilterValue() string { return fmt.Sprintf("%d", s.entry.SV) }

// monitorModel is the Bubble Tea model for the monitor TUI
type monitorModel struct {
	connInfo string
	stats    *ai2.Statistics

	lastFix  *fixData
	satList  list.Model
	lastNMEA string

	eventLog      []eventLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
	lost     bool
	lostErr  error
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type monitorBatchMsg struct {
	events []ai2.Event
}

type monitorClosedMsg struct {
	err error
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(cfg.Device)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := ai2.NewStream(conn, 0)
	stream.Start(ctx)

	m := initialMonitorModel(connInfo, stream.Stats())
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Batch sender goroutine - drains stream events and forwards them to
	// the TUI at a fixed rate so a chatty receiver cannot flood the
	// render loop.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		var pending []ai2.Event
		for {
			select {
			case ev, ok := <-stream.Events():
				if !ok {
					if len(pending) > 0 {
						p.Send(monitorBatchMsg{events: pending})
					}
					p.Send(monitorClosedMsg{err: stream.Err()})
					return
				}
				pending = append(pending, ev)

			case <-ticker.C:
				if len(pending) > 0 {
					p.Send(monitorBatchMsg{events: pending})
					pending = nil
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	// Closing the transport unblocks the stream's pending read.
	cancel()
	conn.Close()
	return nil
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

func initialMonitorModel(connInfo string, stats *ai2.Statistics) monitorModel {
	delegate := list.NewDefaultDelegate()
	satList := list.New([]list.Item{}, delegate, 40, 12)
	satList.Title = "Satellites"
	satList.SetShowStatusBar(false)
	satList.SetFilteringEnabled(false)
	satList.SetShowHelp(false)

	return monitorModel{
		connInfo:      connInfo,
		stats:         stats,
		satList:       satList,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.satList, cmd = m.satList.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.satList.SetSize(40, m.height/2)

	case monitorTickMsg:
		// Rates are recomputed on every Snapshot; the tick just forces a
		// periodic render.
		return m, monitorTickCmd()

	case monitorBatchMsg:
		for _, ev := range msg.events {
			m.applyEvent(ev)
		}

	case monitorClosedMsg:
		m.lost = true
		m.lostErr = msg.err
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("CONNECTION LOST: %v", msg.err), true)
		} else {
			m.addLogEntry("Connection closed", false)
		}
	}

	return m, nil
}

func (m *monitorModel) applyEvent(ev ai2.Event) {
	if ev.Err != nil {
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", ev.Err), true)
		return
	}

	switch rec := ev.Record.(type) {
	case ai2.PositionFix:
		m.lastFix = &fixData{
			timestamp:  time.Now(),
			fcount:     rec.FCount,
			latDeg:     rec.LatDeg,
			lonDeg:     rec.LonDeg,
			altitudeM:  rec.AltitudeM,
			hasAlt:     true,
			satellites: rec.Satellites,
		}

	case ai2.ExtendedPositionFix:
		m.lastFix = &fixData{
			timestamp:  time.Now(),
			fcount:     rec.FCount,
			latDeg:     rec.LatDeg,
			lonDeg:     rec.LonDeg,
			satellites: rec.Satellites,
		}

	case ai2.SatelliteMeasurementSet:
		items := make([]list.Item, len(rec.Entries))
		for i, e := range rec.Entries {
			items[i] = satItem{entry: e}
		}
		m.satList.SetItems(items)
		if rec.Excess > 0 {
			m.addLogEntry(fmt.Sprintf("measurement carried %d excess bytes", rec.Excess), false)
		}

	case ai2.FreeText:
		m.lastNMEA = strings.TrimRight(rec.Text, "\r\n")

	case ai2.AsyncEvent:
		m.addLogEntry(fmt.Sprintf("receiver event: %s", ai2.FormatEventKind(rec.Kind)), false)

	case ai2.ErrorReport:
		m.addLogEntry(ai2.FormatRecord(rec), true)

	case ai2.Unknown:
		// Counted in statistics; too chatty for the log.
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("PELORUS - RECEIVER MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if m.lost {
		if m.lostErr != nil {
			s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Connection lost: %v", m.lostErr)))
		} else {
			s.WriteString(warningStyle.Render("Connection closed"))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	stats := m.stats.Snapshot()
	errCount := stats.ChecksumErrors + stats.OverlongFrames + stats.CancelledFrames +
		stats.EscapeErrors + stats.ShortFrames + stats.TruncatedSubs + stats.RecordErrors

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", stats.Frames)),
		labelStyle.Render("Acks:"), valueStyle.Render(fmt.Sprintf("%d", stats.Acks)),
		labelStyle.Render("Records:"), valueStyle.Render(fmt.Sprintf("%d", stats.Records)),
		labelStyle.Render("Errors:"), func() string {
			if errCount > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", errCount))
			}
			return valueStyle.Render("0")
		}(),
	))
	if stats.ChecksumErrors > 0 || stats.EscapeErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", stats.ChecksumErrors)),
			labelStyle.Render("Escape Errors:"), errorStyle.Render(fmt.Sprintf("%d", stats.EscapeErrors)),
		))
	}
	if stats.DroppedEvents > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Dropped Events:"), warningStyle.Render(fmt.Sprintf("%d", stats.DroppedEvents)),
		))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", stats.FrameRate)),
		labelStyle.Render("Error Rate:"), func() string {
			if stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
			}
			return valueStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Fix section
	fixContent := strings.Builder{}
	if m.lastFix == nil {
		fixContent.WriteString(warningStyle.Render("⏳ Waiting for a position fix..."))
	} else {
		fixContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Latitude:"), valueStyle.Render(fmt.Sprintf("%.6f°", m.lastFix.latDeg)),
			labelStyle.Render("Longitude:"), valueStyle.Render(fmt.Sprintf("%.6f°", m.lastFix.lonDeg)),
		))
		if m.lastFix.hasAlt {
			fixContent.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render("Altitude:"), valueStyle.Render(fmt.Sprintf("%.1f m", m.lastFix.altitudeM)),
			))
		}
		fixContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
			labelStyle.Render("FCount:"), valueStyle.Render(fmt.Sprintf("%d", m.lastFix.fcount)),
			labelStyle.Render("SVs used:"), valueStyle.Render(fmt.Sprintf("%d", len(m.lastFix.satellites))),
			labelStyle.Render("Age:"), headerStyle.Render(time.Since(m.lastFix.timestamp).Round(time.Second).String()),
		))
	}

	fixBox := boxStyle.Render(fixContent.String())
	satBox := boxStyle.Render(m.satList.View())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, fixBox, " ", satBox))
	s.WriteString("\n\n")

	if m.lastNMEA != "" {
		s.WriteString(labelStyle.Render("NMEA:"))
		s.WriteString(" ")
		s.WriteString(valueStyle.Render(m.lastNMEA))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 20 // Reserve space for header, stats and fix
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
