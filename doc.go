// Package livecookie recovers decrypted session cookies from a locally
// installed Chromium-family browser.
//
// It combines four extraction paths behind one call: querying a browser that
// already exposes its remote-debugging port, restarting or launching the
// browser against its original profile with debugging enabled, and reading
// the on-disk cookie database directly with the OS-unwrapped master key. The
// orchestrator detects the browser's current state, picks a strategy and
// falls back once to the direct database read, so callers get a best-effort
// cookie list without caring which path succeeded.
//
// This is intended for local tooling (CLI helpers, authenticated mirroring,
// test harnesses). It reads local browser state, may close and relaunch the
// user's browser, may trigger keychain/keyring prompts, and should not be
// used in server contexts.
package livecookie
