// Package jwt decodes access-token claims for client-side introspection. It never
// verifies signatures; verification is the remote server's job, and the client
// treats the server's 401 as the only authority on token validity.
package jwt
