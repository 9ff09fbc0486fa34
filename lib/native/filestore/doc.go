/*
Package filestore implements native storage as a directory shared by all contexts
of a profile, usually <profile>/local.

Each key is one file named "k_" + base64url(key); the file holds the value. Writes
go to a temporary ".tmp-<uuid>" file that is renamed over the key file, so readers
see either the old or the new value.

Store.Watch starts a Watcher (fsnotify) that dispatches an events.StorageEvent
whenever another context changed or removed a key. Writes of the same Store are
recorded in its snapshot before they hit the disk and are never reported back.

Example:

	st, err := filestore.Open(filepath.Join(profile, "local"))
	if err != nil {
		return err
	}
	w, err := st.Watch(bus.Storage)
	if err != nil {
		return err
	}
	defer w.Close()
*/
package filestore
