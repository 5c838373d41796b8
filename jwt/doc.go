// Package jwt decodes and issues the signed credentials that identify a goSocial user.
//
// Clients never hold the signing key, so they only [Decode] a persisted credential to
// learn its claims and expiry. The API side (and the development server) uses a
// [Manager] to issue and verify credentials.
package jwt
