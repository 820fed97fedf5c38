/*
Package authsdk is a Go client for the BeatMe authentication service.

# SDKClient vs Session

SDKClient covers the public endpoints: provider consent links, completing a
sign-in and health probes. Completing a sign-in returns a Session, which
carries the token pair and refreshes it when the access token expires.

	client := authsdk.NewSDKClient("https://auth.example.com")

	link, err := client.AuthorizeLink(ctx, "google")
	// send the user to link, receive ?code=... on the redirect URI

	session, err := client.SignIn(ctx, "google", code)

	me, err := session.Me(ctx)

# Linking providers

A signed-in session can attach another provider to the same user:

	err := session.LinkProvider(ctx, "spotify", spotifyCode)

If the provider account already belongs to someone else the call fails with
an *APIError whose Code is ErrorCodeAccountConflict.

# Refresh

Refresh tokens are single use. Session.Refresh swaps the pair and replaces
both tokens; the old pair is dead afterwards. Sessions are safe for
concurrent use.
*/
package authsdk
