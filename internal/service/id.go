package service

import "crypto/rand"

// linkIDAlphabet is URL-safe and 64 characters long, so a masked random byte
// maps onto it without bias.
const linkIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// linkIDLength keeps links short while leaving ~60 bits of entropy, enough to
// make ids unguessable at this store's scale.
const linkIDLength = 10

// newLinkID generates a fresh unguessable public link id.
func newLinkID() (string, error) {
	buf := make([]byte, linkIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = linkIDAlphabet[int(b)&63]
	}
	return string(buf), nil
}
