// Package debugserver relays remote debugger commands to the native engine.
//
// When the JS bundle runs inside a browser debugger, the engine API is not
// injected into the JS runtime. Instead the debugger POSTs each command to
// this server: the request path names the command and the raw body carries
// its JSON arguments. The engine's answer is written back verbatim.
//
//	srv := debugserver.New(engine, debugserver.Config{Port: debugserver.DefaultPort}, logger)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//	defer srv.Stop(context.Background())
//
// Every response carries an Access-Control-Allow-Origin header for the
// development bundler origin, and GET requests asking for a websocket upgrade
// get a persistent channel carrying the same commands as JSON messages.
package debugserver
