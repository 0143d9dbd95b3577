// package bot contains the dispatch core: message classification, the
// per-chat session store, the download workflows, and the Telegram transport
// adapter.
package bot
