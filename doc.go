// Package locker provides a multi-tenant key/value content store and image
// blob store backed by the local filesystem, with stateless token
// authentication.
//
// Each user owns an isolated directory. Text content is addressed by an
// opaque key and stored at <root>/<username>/<key>; images are stored at
// <root>/<username>/images/<prefix>/<random>.<ext> and addressed by a public
// object key.
//
// # Key Components
//
//   - TokenCodec: issues and verifies signed identity tokens (HS256 JWT)
//   - Authenticator: credential check at login, token resolution per request
//   - WithIdentity / IdentityFromContext: per-operation identity scope
//   - Service: content and image operations for the identity in the context
//   - ContentStorage / ImageStorage: interfaces implemented by the filesystem package
//
// # Etags
//
// An etag is the file's modification time in Unix milliseconds, not a
// content hash. Overwriting a key always produces a larger etag; reading
// never changes it.
//
// # Example Usage
//
//	codec, err := locker.NewTokenCodec(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	auth := locker.NewAuthenticator(registry, codec)
//
//	service, err := locker.NewService(contentStore, imageStore)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, release := locker.WithIdentity(ctx, user)
//	defer release()
//	etag, err := service.Put(ctx, "notes.txt", "hello")
//
// See the http package for the REST API and the filesystem package for the
// sandboxed storage implementation.
package locker
