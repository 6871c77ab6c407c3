// Package tui implements the watch terminal dashboard for wirelessboard.
//
// This package renders the receivers a running wirelessboard server has
// discovered as a live, full-screen table. Built on the Bubble Tea
// framework, it follows the Elm architecture with immutable state updates
// and a Model-Update-View pattern.
//
// # Data Flow
//
// The dashboard is fed through the Transport seam, normally backed by
// internal/apiclient:
//
//  1. On start it opens the server's WebSocket push channel and shows a
//     spinner until the first snapshot arrives.
//  2. Each push replaces the table contents; displayed ages keep advancing
//     between pushes via a one-second ticker.
//  3. If the subscription cannot be established or drops, the dashboard
//     falls back to polling the HTTP API every two seconds, matching the
//     server's own push cadence.
//
// Tests substitute a fake Transport, so rendering is exercised without a
// live server.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/table: The receiver table (slot, IP, type, channels, model,
//     band, source, age)
//   - bubbles/spinner: Connection progress indicator
//   - bubbles/help + bubbles/key: Context-aware key binding help
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	client := apiclient.New(addr)
//	model := tui.New(ctx, tui.NewClientTransport(client), addr)
//	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Bindings
//
//   - ↑/k, ↓/j: move the table selection
//   - r: force an immediate snapshot fetch
//   - ?: toggle expanded help
//   - q, ESC, Ctrl+C: quit
//
// # State Management
//
// Models contain all state; Update() returns a new model plus commands,
// View() is a pure function of model state, and async work (subscribe,
// fetch, tickers) runs as commands. The Bubble Tea framework serializes
// all updates in a single goroutine.
package tui
