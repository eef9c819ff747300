// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the support chat view of the supportdesk TUI.

The view owns one message log and one session identity for its whole life.
Each send goes through the agent router, echoes the user turn immediately
and issues exactly one agent call; the reply or a failure notice is appended
when the call completes.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model holding the log, the session
manager, the request state and the viewport/input widgets.

## Request Lifecycle (lifecycle.go)

Send implements the single-flight guard: while a request is in flight every
further send is a no-op. Completions carry a sequence number so a stale
completion never adds a second reply.

## View Synchronizer (sync.go)

Synchronizer notices log growth and returns a deferred ScrollToLatestMsg so
the newest turn is scrolled into view after it has been rendered.

# Key Types

  - Model: chat view state
  - Asker: the agent call, implemented by *support.Client
  - ReplyMsg, FailureMsg: request completions
  - ScrollToLatestMsg: deferred scroll request

# Usage

	chatView := chat.New(chat.Options{
	    Theme:    theme,
	    Asker:    client,
	    Router:   router.New(routes),
	    Session:  session.NewManager(session.DefaultConfig()),
	    Logger:   logger,
	    Greeting: cfg.Chat.Greeting,
	})
	cmd := chatView.Init()
*/
package chat
