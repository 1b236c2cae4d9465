// Package robotconfig is the robot credential and configuration store.
//
// It maps a robot's serial number to the connection material needed to
// reach and authenticate with it: network address, identity GUID, TLS
// certificate, and an optional remote-host override. The backing file is a
// plain-text INI file, one section per serial number:
//
//	[00e20142]
//	guid=<opaque token>
//	name=Vector-E5S6
//	cert=/home/user/.anki_vector/Vector-E5S6-00e20142.cert
//	ip=192.168.1.57
//	remote=relay.example.com:443
//
// The certificate is logically part of the entry but physically lives in a
// separate PEM file beside the configuration; the section stores only its
// path. Unknown keys in a section survive a read-modify-write cycle
// untouched, so files shared with other tools stay intact. This package
// owns exactly this schema — it is not a general-purpose key/value API.
//
// # Usage Example
//
//	store := robotconfig.NewStore()
//	path, err := store.DefaultPath()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entry := robotconfig.NewEntry("00e20142")
//	entry.SetRobotName("Vector-E5S6")
//	entry.SetGUID(token)
//	entry.SetCertificate(pem)
//
//	if err := store.AddOrUpdate(path, entry); err != nil {
//	    log.Fatal(err)
//	}
//
// # Change Notification
//
// Entry's IPAddress and RemoteHost fields are observable: connection code
// subscribes with OnChange and is told, synchronously and on the mutating
// goroutine, when the address or routing of a robot changes. The store
// itself never reacts to notifications — callers push changed entries back
// to disk explicitly.
//
// # Error Handling
//
// Failures carry a *ConfigError categorized as load (unparsable content or
// unreadable certificate), validation (required field missing on write),
// or I/O (filesystem failure). A failing section aborts a whole load; a
// failing entry aborts a whole save before anything is written. Nothing is
// retried.
package robotconfig
