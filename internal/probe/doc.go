// Package probe attempts candidate passwords against an encrypted ZIP archive.
//
// A probe decodes every entry of the archive in full, so CRC32 (ZipCrypto) or
// HMAC (WinZip AES) verification runs on the real content rather than trusting
// the one-byte header check. Results are reported as a typed Outcome:
// WrongPassword for password or integrity failures, Corrupt for structural
// problems unrelated to the password, and Success. Probers never write to disk;
// Extract materializes the content once a password is known.
package probe
