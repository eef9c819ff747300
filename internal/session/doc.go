// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the per-view chat session identity.
//
// A chat view owns exactly one Manager. The identity is generated lazily on
// the first activation of the view and is attached unmodified to every
// request the view sends. It is never renewed; reopening the console yields
// a new identity.
//
// # Key Types
//
//   - Manager: Owner of the session identity
//   - Session: Identifier plus creation time
//   - StartedMsg: Bubble Tea message reporting the identity is ready
//
// # Usage
//
//	mgr := session.NewManager(session.DefaultConfig())
//	cmd := mgr.StartCmd() // returned from the view's Init
//	...
//	if id, ok := mgr.ID(); ok {
//	    client.Ask(ctx, route, payload, id)
//	}
package session
