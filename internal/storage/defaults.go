package storage

// Default message templates seeded into the settings row on first run.
// Admins edit the live copies through the dashboard.
const (
	DefaultWelcomeMessage = `*Selamat Datang di ANONYCHAT!* 👋

Sebelum mulai, yuk kita sepakati beberapa aturan mainnya:

1.  *No SARA & No Toxic!* Jaga obrolan tetap asik dan saling menghargai.
2.  *Dilarang Spamming* atau kirim pesan aneh-aneh ya.
3.  *Privasi itu penting!* Jangan sebarin info pribadi kamu atau orang lain.
4.  Admin berhak negur atau nge-banned kalau ada yang melanggar.

Udah siap? Yuk cari teman ngobrol baru!`

	DefaultMenuMessage = `Hai *{nickname}*! ✨ Mau ngapain kita hari ini?

*Pilih Aksi Kamu:*

- *!chat*
  ✨ _Yuk, cari teman ngobrol random!_

- *!stop* / *!skip*
  👋 _Udahan atau ganti partner chat._

- *!lapor*
  🚨 _Laporkan pengguna yang nakal._

- *!stiker*
  🖼️ _Ubah gambar jadi stiker kece._

- *!stikergif*
  🎬 _Bikin stiker gerak dari video/GIF (Maks 7 dtk)._`

	DefaultDevelopmentMessage = `🛠️ *Mode Pengembangan Aktif*

Maaf, bot sedang dalam tahap pengembangan dan pengujian. Hanya developer yang dapat menggunakan bot saat ini. Silakan coba lagi nanti!`
)
