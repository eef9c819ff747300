// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll provides periodic background refresh for read-only views.
//
// # Key Types
//
//   - Poller: Generic value-type refresher driven by bubbletea messages
//   - FetchFunc: Loader for one snapshot
//
// # Usage
//
// Mount on activation, forward messages, tear down on deactivation:
//
//	p := poll.New("tickets", 30*time.Second, client.Tickets)
//	p, cmd := p.Start()
//	...
//	p, cmd = p.Update(msg)
//	...
//	p, _ = p.Stop()
package poll
