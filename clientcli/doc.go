// Package clientcli is a client library for locker servers.
//
// It wraps the login, put, get, delete, getEtag, uploadImage and image
// routes, decoding the server's {code, message, data} envelope. Server
// errors come back as *APIError and can be matched with errors.Is against
// ErrNotFound, ErrUnauthorized and ErrBadRequest.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5708"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if _, err := client.Login(ctx, "alice", "secret"); err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := client.Put(ctx, "notes/todo.txt", "buy milk")
//
// # Profiles
//
// Profiles keep an endpoint and the session obtained by login, so the
// token survives between invocations:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatPut(os.Stdout, res)
package clientcli
