// Package cart holds the shopper cart model, the wire shape of the remote
// cart resource and the ports the cart synchronizer depends on.
//
// The remote storefront API is the source of truth. A Cart is never edited
// in place; it is rebuilt from a RemoteCart with Project after every fetch.
package cart
