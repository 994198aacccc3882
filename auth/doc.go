// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the coordinator key used to prove the coordinator
identity over HTTP.

# Coordinator Keys

Coordinator keys use HMAC-SHA256 over the election ID and coordinator
identity to create deterministic, verifiable keys:

	key := auth.GenerateCoordinatorKey(electionID, coordinatorID, salt)
	err := auth.ValidateCoordinatorKey(electionID, coordinatorID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same inputs always produce the same key, so it never has to be stored.
The server logs the key once, when the election is first created.

Participants are not issued keys; they are identified by the allow-list the
coordinator builds during registration.
*/
package auth
