// Package firmware uploads WLED firmware images.
//
// Check validates the local image once per run; Updater then POSTs it to
// http://<device>/update as multipart field "file". The device flashes and
// reboots on its own after accepting the upload.
package firmware
